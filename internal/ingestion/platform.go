package ingestion

import "strings"

// Platform is a job board whose page layout is known.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

func platformFor(host string) Platform {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return PlatformLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return PlatformWorkday
	default:
		return PlatformUnknown
	}
}

func contentSelectors(p Platform) []string {
	switch p {
	case PlatformGreenhouse:
		return []string{".job__description", ".job-post-container", "#content"}
	case PlatformLever:
		return []string{".posting-page", ".posting-description", ".content"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"}
	default:
		return []string{
			".job-description",
			"#job-description",
			".job-details",
			"[data-testid='job-description']",
			"main",
			"article",
			"#content",
		}
	}
}

func noiseSelectors(p Platform) []string {
	common := []string{
		"nav", "footer", "header", "script", "style", "noscript", "svg", "form",
		".cookie-banner", ".cookie-consent", ".social-share", ".eeo-statement", ".application-form",
	}
	switch p {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".apply-section")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
