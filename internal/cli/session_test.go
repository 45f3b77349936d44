package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintErrorWritesToGivenWriter(t *testing.T) {
	var stdout, stderr bytes.Buffer

	// The session hands printError its stderr writer; nothing may land
	// on stdout.
	printError(&stderr, errors.New("contact \"bob\" not found"))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "error:")
	assert.Contains(t, stderr.String(), `contact "bob" not found`)
}

func TestPrintWelcome(t *testing.T) {
	var out bytes.Buffer
	printWelcome(&out, "xd7auPddUmmEzSmEPdptqonAMzDmK", 0)
	s := out.String()
	assert.Contains(t, s, "Welcome to leapwallet")
	assert.Contains(t, s, "xd7auPddUmmEzSmEPdptqonAMzDmK")
	assert.NotContains(t, s, "address book:")

	out.Reset()
	printWelcome(&out, "xd7auPddUmmEzSmEPdptqonAMzDmK", 3)
	assert.Contains(t, out.String(), "address book: 3 contacts")
}
