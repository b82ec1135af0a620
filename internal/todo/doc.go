// Package todo defines reminder tasks and the on-disk task file format.
//
// Each employee owns one task file, a JSON array:
//
//	[
//	  {
//	    "task": "Send the quarterly report",
//	    "priority": "1",
//	    "due_date": "20-10-26",
//	    "status": "Pendiente"
//	  }
//	]
//
// # Priority Values
//
//   - "1": High (Alta)
//   - "2": Medium (Media)
//   - "3": Low (Baja)
//
// Reading also accepts JSON numbers 1..3 and the level names in English or
// Spanish, case-insensitive. Writing always uses the quoted digit.
//
// # Task Status Values
//
//   - "Pendiente": Task is pending
//   - "Completada": Task is complete
//
// # Due Dates
//
// Due dates are calendar dates in dd-mm-yy form (Go layout "02-01-06").
// They are kept as written and parsed on demand, so a single corrupt entry
// is reported against that task instead of failing the whole file.
//
// # Validation
//
// Task files and the employee directory can be checked against the JSON
// Schemas embedded in this package (see ValidateTaskFile and
// ValidateDirectoryFile).
package todo
