package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/collector.txt
	collectorRaw string

	//go:embed template/opening.txt
	openingRaw string
)

// Collector returns the persona system prompt for the collection agent.
func Collector() string {
	return strings.TrimSpace(collectorRaw)
}

// Opening renders the internal instruction that kicks off a new call for
// the given customer. It is appended to history, never shown to the caller.
func Opening(customerID string) string {
	return strings.ReplaceAll(strings.TrimSpace(openingRaw), "{customer_id}", customerID)
}
