package eventbus

import "fmt"

const (
	// SubjectPrefix is the canonical prefix for agent lifecycle events.
	SubjectPrefix = "anima.v1"
)

// Domain identifies agent lifecycle event domains.
type Domain string

const (
	DomainTurn     Domain = "turn"
	DomainProvider Domain = "provider"
	DomainMemory   Domain = "memory"
	DomainEmotion  Domain = "emotion"
)

// DomainSubject returns the canonical subject for a domain event.
func DomainSubject(domain Domain, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sanitizeSegment(string(domain)), sanitizeSegment(eventType))
}

// TurnSubject returns the canonical turn lifecycle subject.
func TurnSubject(eventType string) string {
	return DomainSubject(DomainTurn, eventType)
}

// ProviderSubject returns the canonical provider lifecycle subject.
func ProviderSubject(eventType string) string {
	return DomainSubject(DomainProvider, eventType)
}

// MemorySubject returns the canonical memory lifecycle subject.
func MemorySubject(eventType string) string {
	return DomainSubject(DomainMemory, eventType)
}

// EmotionSubject returns the canonical emotion lifecycle subject.
func EmotionSubject(eventType string) string {
	return DomainSubject(DomainEmotion, eventType)
}

// DomainWildcardSubject returns canonical wildcard subject for a domain.
func DomainWildcardSubject(domain Domain) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, sanitizeSegment(string(domain)))
}

// AllSubjects returns the wildcard subject covering every agent event.
func AllSubjects() string {
	return SubjectPrefix + ".>"
}

func sanitizeSegment(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
