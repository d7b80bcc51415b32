package domain

// UserType is the role of an account referenced by a booking.
type UserType string

const (
	UserCustomer   UserType = "customer"
	UserTranslator UserType = "translator"
	UserAdmin      UserType = "admin"
	UserSuperAdmin UserType = "superadmin"
)

// ConsumerTier drives the job type of bookings a customer creates.
type ConsumerTier string

const (
	ConsumerPaid ConsumerTier = "paid"
	ConsumerRWS  ConsumerTier = "rwsconsumer"
	ConsumerNGO  ConsumerTier = "ngo"
)

// TranslatorType drives which job types a translator may see and accept.
type TranslatorType string

const (
	TranslatorProfessional TranslatorType = "professional"
	TranslatorRWS          TranslatorType = "rwstranslator"
	TranslatorVolunteer    TranslatorType = "volunteer"
)

// Certification is a credential tier held by a translator.
type Certification string

const (
	CertLayman  Certification = "layman"
	CertCourses Certification = "read_translation_courses"
	CertYes     Certification = "certified"
	CertLaw     Certification = "certified_law"
	CertHealth  Certification = "certified_health"
)

// User is an account referenced (not owned) by the booking engine.
type User struct {
	ID           string       `db:"id"`
	Type         UserType     `db:"user_type"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Phone        string       `db:"phone"`
	City         string       `db:"city"`
	ConsumerTier ConsumerTier `db:"consumer_tier"`
	Enabled      bool         `db:"enabled"`
}

// IsCustomer reports whether the user may create bookings.
func (u *User) IsCustomer() bool { return u.Type == UserCustomer }

// IsTranslator reports whether the user may accept bookings.
func (u *User) IsTranslator() bool { return u.Type == UserTranslator }

// IsAdmin reports whether the user may run admin edits.
func (u *User) IsAdmin() bool {
	return u.Type == UserAdmin || u.Type == UserSuperAdmin
}

// TranslatorProfile is the matching-relevant view of a translator account.
type TranslatorProfile struct {
	UserID         string
	Type           TranslatorType
	Gender         Gender
	City           string
	Email          string
	Phone          string
	Languages      []string
	Certifications []Certification

	// Notification preferences.
	OptOutAll       bool // never notify
	OptOutNight     bool // delay pushes to next business time at night
	OptOutEmergency bool // skip pushes for immediate bookings
}

// Knows reports whether the translator covers the given source language.
func (p *TranslatorProfile) Knows(languageID string) bool {
	for _, l := range p.Languages {
		if l == languageID {
			return true
		}
	}
	return false
}

// Holds reports whether the translator holds any of the given certifications.
func (p *TranslatorProfile) Holds(levels []Certification) bool {
	for _, want := range levels {
		for _, have := range p.Certifications {
			if have == want {
				return true
			}
		}
	}
	return false
}
