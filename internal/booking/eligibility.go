package booking

import (
	"context"

	"github.com/tolkify/booking-be/internal/booking/domain"
)

// RequiredJobType maps a translator type to the single job type it may work.
func RequiredJobType(t domain.TranslatorType) domain.JobType {
	switch t {
	case domain.TranslatorProfessional:
		return domain.JobTypePaid
	case domain.TranslatorRWS:
		return domain.JobTypeRWS
	default:
		return domain.JobTypeUnpaid
	}
}

// AllowedCertifications maps a job's certified level to the set of
// translator certifications that satisfy it. An unset level accepts any
// certification.
func AllowedCertifications(level domain.CertifiedLevel) []domain.Certification {
	switch level {
	case domain.CertifiedYes:
		return []domain.Certification{domain.CertYes, domain.CertLaw, domain.CertHealth}
	case domain.CertifiedLaw, domain.CertifiedNLaw:
		return []domain.Certification{domain.CertLaw}
	case domain.CertifiedHealth, domain.CertifiedNHealth:
		return []domain.Certification{domain.CertHealth}
	case domain.CertifiedNormal:
		return []domain.Certification{domain.CertLayman, domain.CertCourses}
	case domain.CertifiedBoth:
		return []domain.Certification{
			domain.CertYes, domain.CertLaw, domain.CertHealth,
			domain.CertLayman, domain.CertCourses,
		}
	default:
		return []domain.Certification{
			domain.CertYes, domain.CertLaw, domain.CertHealth,
			domain.CertLayman, domain.CertCourses,
		}
	}
}

// allLevels enumerates every certified level a job can carry, including unset.
var allLevels = []domain.CertifiedLevel{
	domain.CertifiedNone, domain.CertifiedNormal, domain.CertifiedYes,
	domain.CertifiedLaw, domain.CertifiedHealth, domain.CertifiedBoth,
	domain.CertifiedNLaw, domain.CertifiedNHealth,
}

// AcceptableLevels inverts AllowedCertifications: the job levels a
// translator with the given certifications may be matched against. Used by
// the store to filter the pending-job scan.
func AcceptableLevels(certs []domain.Certification) []domain.CertifiedLevel {
	var levels []domain.CertifiedLevel
	for _, level := range allLevels {
		allowed := AllowedCertifications(level)
		for _, want := range allowed {
			found := false
			for _, have := range certs {
				if have == want {
					found = true
					break
				}
			}
			if found {
				levels = append(levels, level)
				break
			}
		}
	}
	return levels
}

// Matches runs the pure eligibility checks of a translator against a
// pending job: job type, language, gender constraint, certification level.
// Blacklist, town and pinning need the store and are layered on top.
func Matches(job *domain.Job, p *domain.TranslatorProfile) bool {
	if job.Status != domain.StatusPending {
		return false
	}
	if RequiredJobType(p.Type) != job.JobType {
		return false
	}
	if !p.Knows(job.FromLanguageID) {
		return false
	}
	if job.Gender != domain.GenderAny && p.Gender != job.Gender {
		return false
	}
	return p.Holds(AllowedCertifications(job.CertifiedLevel))
}

// EligibleForJob runs the full eligibility check for one translator and
// one job, including the store-backed constraints.
func (s *Service) EligibleForJob(ctx context.Context, job *domain.Job, p *domain.TranslatorProfile) (bool, error) {
	if !Matches(job, p) {
		return false, nil
	}

	blacklisted, err := s.users.Blacklisted(ctx, job.CustomerID, p.UserID)
	if err != nil {
		return false, err
	}
	if blacklisted {
		return false, nil
	}

	// Physical-only jobs stay within the customer's town.
	if job.PhysicalOnly() {
		match, err := s.store.TownMatch(ctx, job.CustomerID, p.UserID)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}

	// A pinned job is visible only to its translator, and then only while
	// that translator is actually free to take it.
	if job.PinnedTranslatorID != "" {
		if job.PinnedTranslatorID != p.UserID {
			return false, nil
		}
		busy, err := s.store.TranslatorBusyAt(ctx, p.UserID, job.Due, job.Duration)
		if err != nil {
			return false, err
		}
		if busy {
			return false, nil
		}
	}

	return true, nil
}

// PotentialJobs returns the pending jobs the translator is currently
// eligible to accept, ordered by due time ascending. Used both for the
// translator-facing listing and for push fan-out targeting.
func (s *Service) PotentialJobs(ctx context.Context, translatorID string) ([]domain.Job, error) {
	profile, err := s.users.TranslatorProfile(ctx, translatorID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.PendingMatches(ctx, MatchFilter{
		TranslatorID: translatorID,
		JobType:      RequiredJobType(profile.Type),
		Languages:    profile.Languages,
		Gender:       profile.Gender,
		Levels:       AcceptableLevels(profile.Certifications),
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, len(candidates))
	for i := range candidates {
		job := &candidates[i]

		if job.PhysicalOnly() {
			match, err := s.store.TownMatch(ctx, job.CustomerID, translatorID)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}

		if job.PinnedTranslatorID != "" {
			if job.PinnedTranslatorID != translatorID {
				continue
			}
			busy, err := s.store.TranslatorBusyAt(ctx, translatorID, job.Due, job.Duration)
			if err != nil {
				return nil, err
			}
			if busy {
				continue
			}
		}

		jobs = append(jobs, *job)
	}

	return jobs, nil
}
