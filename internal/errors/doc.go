// Package errors provides coded, actionable errors for the dropzone CLI.
//
// Each error carries a code (e.g., "DZ102") that maps to a short message
// and a longer explanation. Callers add detail, a suggestion, a source
// location or a wrapped cause:
//
//	err := errors.New("DZ102").
//	    WithLocation("dropzone.json", 4, 18).
//	    WithSuggestion("Check that dropzone.json is valid JSON")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR DZ102: Invalid configuration file
//	//
//	//   dropzone.json:4:18
//	//
//	//       2 │   "upload": {
//	//       3 │     "maxFileSizeMB": 10,
//	//   →   4 │     "successURL": ,
//	//         │                  ^
//	//       5 │   }
//	//       6 │ }
//	//
//	//   Hint: Check that dropzone.json is valid JSON
//
// # Error Codes
//
//   - DZ1xx: configuration
//   - DZ2xx: storage
//   - DZ3xx: command line
package errors
