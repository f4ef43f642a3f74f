package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Graph Errors (E001-E009)
	// ============================================

	"E001": {
		Category:   CategoryStructure,
		Message:    "Circular dependency",
		Detail:     "The new content would make a variable read its own value, directly or through other variables. The change was rejected and the graph is unchanged.",
		Suggestion: "Remove one of the references in the cycle.",
	},
	"E002": {
		Category:   CategoryDocument,
		Message:    "Unknown function",
		Detail:     "The expression calls a function that is not in the catalog.",
		Suggestion: "Run `recalc functions` to list the available functions.",
	},
	"E003": {
		Category:   CategoryDocument,
		Message:    "Invalid expression document",
		Detail:     "Every node must be a JSON object with exactly one of number, bool, text, null, ref or call.",
		Suggestion: `Write a call as {"call": "add", "args": [{"ref": ["A1"]}, {"number": "1"}]}.`,
	},
	"E004": {
		Category: CategoryLookup,
		Message:  "Unknown variable",
		Detail:   "No variable with this name exists in the scope.",
	},
	"E005": {
		Category: CategoryStructure,
		Message:  "Variable disposed",
		Detail:   "The variable was disposed and no longer accepts content.",
	},
	"E006": {
		Category: CategoryStructure,
		Message:  "Reference already in use",
		Detail:   "A reference node belongs to the content of one variable only.",
	},

	// ============================================
	// Config Errors (E010-E019)
	// ============================================

	"E010": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "A configuration value is out of range or not one of the accepted choices.",
		Suggestion: "Check recalc.json or recalc.yaml against the documented defaults.",
	},
	"E011": {
		Category: CategoryConfig,
		Message:  "Configuration unreadable",
		Detail:   "The configuration file exists but could not be read or parsed.",
	},

	// ============================================
	// CLI Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command stopped with an unexpected error.",
	},
	"E021": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The inspection server could not start or stopped unexpectedly.",
	},
	"E022": {
		Category: CategoryCLI,
		Message:  "Tracing setup failed",
		Detail:   "The trace exporter could not be created.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
