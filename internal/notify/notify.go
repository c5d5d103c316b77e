// Package notify produces localized toast notifications.
//
// Messages live in a [catalog.Builder] keyed by [Key]; a [Queue] localizes
// them for one locale and holds them until a view drains it.
package notify

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Kind classifies a toast for styling.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Toast is a single localized notification.
type Toast struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Key identifies a catalog message.
type Key string

const (
	ContactsLoadFailed  Key = "contacts.load_failed"
	ContactCreated      Key = "contact.created"
	ContactUpdated      Key = "contact.updated"
	ContactSaveFailed   Key = "contact.save_failed"
	ContactDeleteFailed Key = "contact.delete_failed"
	ContactNameRequired Key = "contact.name_required"
	SignOutFailed       Key = "auth.signout_failed"
	SignInFailed        Key = "auth.signin_failed"
	SignUpFailed        Key = "auth.signup_failed"
	EmailTaken          Key = "auth.email_taken"
	OAuthFailed         Key = "auth.oauth_failed"
	RateLimited         Key = "auth.rate_limited"
)

var supported = []language.Tag{language.English, language.Spanish}

var messages = map[language.Tag]map[Key]string{
	language.English: {
		ContactsLoadFailed:  "Could not load your contacts",
		ContactCreated:      "Contact created",
		ContactUpdated:      "Contact updated",
		ContactSaveFailed:   "Could not save the contact",
		ContactDeleteFailed: "Could not delete the contact",
		ContactNameRequired: "Name is required",
		SignOutFailed:       "Could not sign out",
		SignInFailed:        "Invalid email or password",
		SignUpFailed:        "Could not create the account",
		EmailTaken:          "That email is already registered",
		OAuthFailed:         "External sign-in failed",
		RateLimited:         "Too many attempts, try again in a minute",
	},
	language.Spanish: {
		ContactsLoadFailed:  "No se pudieron cargar los contactos",
		ContactCreated:      "Contacto creado",
		ContactUpdated:      "Contacto actualizado",
		ContactSaveFailed:   "No se pudo guardar el contacto",
		ContactDeleteFailed: "No se pudo eliminar el contacto",
		ContactNameRequired: "El nombre es obligatorio",
		SignOutFailed:       "No se pudo cerrar la sesión",
		SignInFailed:        "Correo o contraseña incorrectos",
		SignUpFailed:        "No se pudo crear la cuenta",
		EmailTaken:          "Ese correo ya está registrado",
		OAuthFailed:         "Falló el inicio de sesión externo",
		RateLimited:         "Demasiados intentos, inténtalo en un minuto",
	},
}

var (
	buildOnce sync.Once
	builder   *catalog.Builder
	matcher   = language.NewMatcher(supported)
)

// Catalog returns the shared message catalog, building it on first use.
func Catalog() catalog.Catalog {
	buildOnce.Do(func() {
		builder = catalog.NewBuilder(catalog.Fallback(language.English))
		for tag, msgs := range messages {
			for key, text := range msgs {
				if err := builder.SetString(tag, string(key), text); err != nil {
					panic(err)
				}
			}
		}
	})
	return builder
}

// Match picks the best supported language for a list of locale strings or
// Accept-Language values, preferring them in order. English is the fallback.
func Match(locales ...string) language.Tag {
	tag, _ := language.MatchStrings(matcher, locales...)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

// Printer returns a [message.Printer] for tag over [Catalog].
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(Catalog()))
}

// Text localizes key for tag.
func Text(tag language.Tag, key Key) string {
	return Printer(tag).Sprintf(string(key))
}

// Queue collects localized toasts until drained. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	printer *message.Printer
	toasts  []Toast
}

// NewQueue creates a [Queue] localizing for tag.
func NewQueue(tag language.Tag) *Queue {
	return &Queue{printer: Printer(tag)}
}

// Notify localizes key and appends it.
func (q *Queue) Notify(kind Kind, key Key) {
	text := q.printer.Sprintf(string(key))

	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, Toast{Kind: kind, Text: text})
}

// Push appends an already localized toast.
func (q *Queue) Push(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, t)
}

// Drain returns the pending toasts, oldest first, and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	return out
}
