// Package validation checks flat string fields against rule strings.
//
// Rules are written one field at a time as a comma-free, pipe-separated list,
// the same shape used for catalog entries:
//
//	v := validation.Make(map[string]string{
//	    "name": entry.Name,
//	    "kind": entry.Kind,
//	}, validation.Rules{
//	    "name": "required|max:128|excludes:/|?#!|not_in:options,unload",
//	    "kind": "required",
//	})
//
//	if v.Fails() {
//	    return v.Errors() // implements error
//	}
//
// # Available rules
//
//	required            value must be non-empty after trimming
//	nullable            always passes
//	sometimes           skip remaining rules when the value is empty
//	min:n / max:n       rune length bounds
//	in:a,b / not_in:a,b value must (not) be one of the listed strings
//	alpha_dash          letters, digits, '-', '_' and '.'
//	regex:pattern       value must match the pattern
//	excludes:chars      value must not contain any of chars
//
// Rules run left to right and stop at the first failure for a field.
// Because '|' separates rules, "excludes" must be the last rule of a field
// when its character list contains a '|'.
package validation
