package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Literal(t *testing.T) {
	re, err := Resolve(TypeLiteral, "a.b")
	require.NoError(t, err)

	// Metacharacters in a literal pattern match verbatim only.
	assert.True(t, re.MatchString("found a.b here"))
	assert.False(t, re.MatchString("found axb here"))
}

func TestResolve_LiteralMetacharacters(t *testing.T) {
	re, err := Resolve(TypeLiteral, `price is $5 (net) [maybe] *really*`)
	require.NoError(t, err)
	assert.True(t, re.MatchString(`the price is $5 (net) [maybe] *really* today`))
}

func TestResolve_Regex(t *testing.T) {
	re, err := Resolve(TypeRegex, `\d{4}-\d{2}`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("issued 2024-07"))
	assert.False(t, re.MatchString("issued 24-07"))
}

func TestResolve_RegexInvalid(t *testing.T) {
	_, err := Resolve(TypeRegex, `([unclosed`)
	assert.Error(t, err)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	re, err := Resolve(TypeLiteral, "Secret")
	require.NoError(t, err)
	assert.True(t, re.MatchString("top sECRET stuff"))
}

func TestResolve_PresetEmail(t *testing.T) {
	re, err := Resolve(TypeEmail, "")
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", re.FindString("contact me@example.com please"))
	assert.Equal(t, "First.Last+tag@sub.example.org", re.FindString("cc First.Last+tag@sub.example.org"))
	assert.False(t, re.MatchString("not an email at all"))
}

func TestResolve_PresetIPv4(t *testing.T) {
	re, err := Resolve(TypeIPv4, "")
	require.NoError(t, err)

	assert.Equal(t, "192.168.0.1", re.FindString("host 192.168.0.1 up"))
	assert.Equal(t, "255.255.255.255", re.FindString("mask 255.255.255.255"))
	// Octets above 255 are not addresses.
	assert.False(t, re.MatchString("version 999.999.999.999"))
}

func TestResolve_PresetIBAN(t *testing.T) {
	re, err := Resolve(TypeIBAN, "")
	require.NoError(t, err)
	assert.True(t, re.MatchString("pay to DE89370400440532013000 by friday"))
}

// The PHONE preset is the unlabeled variant: it matches German-style numbers
// with an optional +49/0 prefix but does not require a "phone:"/"tel:" label.
func TestResolve_PresetPhone(t *testing.T) {
	re, err := Resolve(TypePhone, "")
	require.NoError(t, err)

	assert.True(t, re.MatchString("call +49 30 901820 today"))
	assert.True(t, re.MatchString("call 030 901820 today"))
	assert.True(t, re.MatchString("0151 23456789"))
	assert.False(t, re.MatchString("no number here"))
}

func TestResolve_PresetPatternOverride(t *testing.T) {
	// A non-empty pattern on a preset type compiles the pattern directly.
	re, err := Resolve(TypeEmail, `admin@internal\.corp`)
	require.NoError(t, err)

	assert.True(t, re.MatchString("mail admin@internal.corp now"))
	assert.False(t, re.MatchString("mail someone@example.com now"))
}

func TestResolve_UnknownTypeFallsBackToLiteral(t *testing.T) {
	re, err := Resolve(RuleType("SOMETHING_NEW"), "a+b")
	require.NoError(t, err)

	assert.True(t, re.MatchString("sum a+b done"))
	assert.False(t, re.MatchString("sum aab done"))
}
