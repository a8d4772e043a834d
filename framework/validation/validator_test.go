package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-resolver/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.False(t, v.Fails(), "errors: %+v", v.Errors().Bag)
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.True(t, v.Fails(), "expected FAIL on field %q", field)
		assert.NotEmpty(t, v.Errors().First(field), "errors: %+v", v.Errors().Bag)
	})
}

// ── rules ────────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "logger"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	assert.True(t, v.Fails())
	assert.Equal(t, "The name field is required.", v.Errors().First("name"))
	assert.Equal(t, "The name field is required.", v.Errors().Error())
}

func TestValidation_MinMax(t *testing.T) {
	r := validation.Rules{"name": "min:2|max:5"}

	pass(t, "within bounds", map[string]string{"name": "abc"}, r)
	fail(t, "too short", "name", map[string]string{"name": "a"}, r)
	fail(t, "too long", "name", map[string]string{"name": "abcdef"}, r)
}

func TestValidation_InNotIn(t *testing.T) {
	pass(t, "in list", map[string]string{"env": "local"}, validation.Rules{"env": "in:local,production"})
	fail(t, "not in list", "env", map[string]string{"env": "staging"}, validation.Rules{"env": "in:local,production"})
	pass(t, "not reserved", map[string]string{"name": "db"}, validation.Rules{"name": "not_in:options,unload"})
	fail(t, "reserved", "name", map[string]string{"name": "unload"}, validation.Rules{"name": "not_in:options,unload"})
}

func TestValidation_AlphaDash(t *testing.T) {
	r := validation.Rules{"kind": "alpha_dash"}

	pass(t, "dashes and dots", map[string]string{"kind": "admin-server.v2_x"}, r)
	fail(t, "spaces", "kind", map[string]string{"kind": "admin server"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"version": `regex:^v\d+$`}

	pass(t, "matches", map[string]string{"version": "v2"}, r)
	fail(t, "no match", "version", map[string]string{"version": "2"}, r)
}

func TestValidation_Excludes(t *testing.T) {
	r := validation.Rules{"name": "required|excludes:/|?#!"}

	pass(t, "clean", map[string]string{"name": "db-primary"}, r)
	for _, bad := range []string{"a|b", "a?", "a#b", "a!", "a/b"} {
		fail(t, bad, "name", map[string]string{"name": bad}, r)
	}
}

func TestValidation_Sometimes(t *testing.T) {
	r := validation.Rules{"alias": "sometimes|min:3"}

	pass(t, "absent", map[string]string{}, r)
	fail(t, "present but short", "alias", map[string]string{"alias": "ab"}, r)
}

func TestValidation_StopsAtFirstFailure(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required|min:3"})
	assert.True(t, v.Fails())
	assert.Len(t, v.Errors().Bag["name"], 1)
}
