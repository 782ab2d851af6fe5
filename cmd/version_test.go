package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)

	assert.Equal(t, "resume-screener unknown\n", out.String())
}
