package extraction

import (
	"regexp"
	"strings"
)

// Unknown is the sentinel used for contact fields that could not be found.
const Unknown = "N/A"

// Contact holds best-effort identity details pulled from resume text.
type Contact struct {
	Name  string
	Email string
	Phone string
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?(?:\(\d{2,4}\)[\s\-.]?)?\d{3,4}[\s\-.]?\d{3,4}(?:[\s\-.]?\d{2,4})?`)
)

// ExtractContact scans resume text for an email address, a phone number and
// a likely candidate name. Missing fields are set to the Unknown sentinel;
// this function never fails.
func ExtractContact(text string) Contact {
	contact := Contact{Name: Unknown, Email: Unknown, Phone: Unknown}

	if email := emailRe.FindString(text); email != "" {
		contact.Email = email
	}

	if phone := findPhone(text); phone != "" {
		contact.Phone = phone
	}

	if name := guessName(text); name != "" {
		contact.Name = name
	}

	return contact
}

func findPhone(text string) string {
	for _, match := range phoneRe.FindAllString(text, 10) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, match)
		// Dates and zip codes produce short digit runs; real phone
		// numbers have at least 7 digits.
		if len(digits) >= 7 && len(digits) <= 15 {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// guessName takes the first short, letter-only line of the resume. Headers
// like "Curriculum Vitae" are skipped.
func guessName(text string) string {
	skip := map[string]bool{
		"curriculum vitae": true,
		"resume":           true,
		"cv":               true,
	}

	for _, line := range strings.Split(text, "\n")[:min(20, strings.Count(text, "\n")+1)] {
		line = strings.TrimSpace(line)
		if line == "" || skip[strings.ToLower(line)] {
			continue
		}
		if len(line) > 60 || strings.ContainsAny(line, "@0123456789:/|") {
			continue
		}
		words := strings.Fields(line)
		if len(words) >= 1 && len(words) <= 5 {
			return line
		}
	}

	return ""
}
