// Package voice maps spoken navigation commands onto dashboard screens.
package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Screen struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Keywords []string `json:"keywords"`
}

var screens = []Screen{
	{Code: "S-01", Name: "Dashboard", Path: "/", Keywords: []string{"home", "overview", "kpis", "main"}},
	{Code: "S-02", Name: "Contractors", Path: "/contractors", Keywords: []string{"contractor", "workers", "workforce", "people"}},
	{Code: "S-03", Name: "Purchase Orders", Path: "/purchase-orders", Keywords: []string{"purchase order", "pos", "po", "budgets"}},
	{Code: "S-04", Name: "Invoices", Path: "/invoices", Keywords: []string{"invoice", "billing", "bills"}},
	{Code: "S-05", Name: "Timecards", Path: "/timecards", Keywords: []string{"timecard", "time cards", "timesheets", "hours"}},
	{Code: "S-06", Name: "SOW Tranches", Path: "/sow-tranches", Keywords: []string{"tranches", "tranche", "statements of work", "sow", "milestones"}},
	{Code: "S-07", Name: "Messages", Path: "/messages", Keywords: []string{"message", "inbox", "mail"}},
	{Code: "S-08", Name: "Message Templates", Path: "/message-templates", Keywords: []string{"templates", "template"}},
	{Code: "S-09", Name: "Alerts", Path: "/alerts", Keywords: []string{"alert", "notifications", "warnings"}},
	{Code: "S-10", Name: "Departments", Path: "/departments", Keywords: []string{"department", "teams", "cost centers"}},
	{Code: "S-11", Name: "Platform Validation", Path: "/platform/validate", Keywords: []string{"validation", "readiness", "health", "platform"}},
	{Code: "S-12", Name: "Budget Overview", Path: "/budget", Keywords: []string{"budget", "spend", "finance"}},
}

// Screens returns a copy of the screen table.
func Screens() []Screen {
	out := make([]Screen, len(screens))
	copy(out, screens)
	return out
}

var (
	codePattern   = regexp.MustCompile(`^s-?(\d{1,2})$`)
	numberPattern = regexp.MustCompile(`\bscreen\s*(?:number\s*)?(\d{1,2})\b`)
	fillers       = []string{
		"please", "can you", "could you", "i want to", "i'd like to",
		"navigate to", "take me to", "go to", "switch to", "show me", "open up", "open", "show", "display", "view",
	}
	articles = map[string]bool{"the": true, "my": true, "a": true, "all": true, "page": true, "screen": true}
)

// Resolve returns the screen a spoken command refers to.
func Resolve(command string) (Screen, bool) {
	cmd := normalize(command)
	if cmd == "" {
		return Screen{}, false
	}

	if m := codePattern.FindStringSubmatch(cmd); m != nil {
		return byNumber(m[1])
	}
	if m := numberPattern.FindStringSubmatch(cmd); m != nil {
		return byNumber(m[1])
	}

	target := strip(cmd)
	if target == "" {
		return Screen{}, false
	}
	for _, s := range screens {
		if target == strings.ToLower(s.Name) {
			return s, true
		}
	}
	for _, s := range screens {
		for _, k := range s.Keywords {
			if target == k {
				return s, true
			}
		}
	}
	// Longest keyword contained in the command wins, so "purchase orders"
	// beats "orders" style partial hits.
	var (
		best    Screen
		bestLen int
	)
	for _, s := range screens {
		for _, k := range append([]string{strings.ToLower(s.Name)}, s.Keywords...) {
			if len(k) > bestLen && containsWord(target, k) {
				best, bestLen = s, len(k)
			}
		}
	}
	return best, bestLen > 0
}

func byNumber(digits string) (Screen, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Screen{}, false
	}
	code := fmt.Sprintf("S-%02d", n)
	for _, s := range screens {
		if s.Code == code {
			return s, true
		}
	}
	return Screen{}, false
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!?")
	return strings.Join(strings.Fields(s), " ")
}

func strip(cmd string) string {
	for _, f := range fillers {
		cmd = strings.TrimSpace(strings.ReplaceAll(" "+cmd+" ", " "+f+" ", " "))
	}
	words := strings.Fields(cmd)
	kept := words[:0]
	for _, w := range words {
		if !articles[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func containsWord(s, phrase string) bool {
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}
