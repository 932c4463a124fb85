package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// Configuration (DZ100-DZ199)

	"DZ101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file passed with --config does not exist.",
	},
	"DZ102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or is not valid JSON.",
	},
	"DZ103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is missing or out of range.",
	},
	"DZ104": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "A DROPZONE_* environment variable could not be parsed.",
	},

	// Storage (DZ200-DZ299)

	"DZ201": {
		Category: CategoryStorage,
		Message:  "Staging directory unavailable",
		Detail:   "The directory for staged uploads could not be created.",
	},
	"DZ202": {
		Category: CategoryStorage,
		Message:  "S3 client configuration failed",
		Detail:   "The AWS configuration for the S3 store could not be loaded.",
	},
	"DZ203": {
		Category: CategoryStorage,
		Message:  "Output directory unavailable",
		Detail:   "The directory for accepted uploads could not be created.",
	},

	// Command line (DZ300-DZ399)

	"DZ301": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"DZ302": {
		Category: CategoryCLI,
		Message:  "File not readable",
		Detail:   "A file passed to check could not be opened.",
	},
	"DZ303": {
		Category: CategoryCLI,
		Message:  "Files rejected",
		Detail:   "One or more files failed upload validation.",
	},
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Template returns the template for an error code.
func Template(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
