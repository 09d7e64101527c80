package build

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/models"
)

const mavenLog = `[INFO] Scanning for projects...
[INFO] Compiling 14 source files
[ERROR] /work/src/main/java/com/acme/InvoiceService.java:[42,17] cannot find symbol
[ERROR] /work/src/main/java/com/acme/InvoiceService.java:[55,9] incompatible types: String cannot be converted to long
[ERROR] /work/src/main/java/com/acme/InvoiceController.java:[8,1] package com.acme.missing does not exist
[ERROR] /work/src/main/java/com/acme/Invoice.java:[30,5] ';' expected
[ERROR] /work/src/main/java/com/acme/Invoice.java:[31,5] something entirely novel happened
[ERROR] Failed to execute goal org.apache.maven.plugins:maven-compiler-plugin
[INFO] BUILD FAILURE
`

func TestParseErrors_GrammarAndKinds(t *testing.T) {
	errs := ParseErrors(mavenLog)
	require.Len(t, errs, 5)

	assert.Equal(t, models.BuildError{
		File:    "/work/src/main/java/com/acme/InvoiceService.java",
		Line:    42,
		Column:  17,
		Message: "cannot find symbol",
		Kind:    models.ErrorKindSymbolNotFound,
	}, errs[0])

	assert.Equal(t, models.ErrorKindTypeMismatch, errs[1].Kind)
	assert.Equal(t, models.ErrorKindMissingImport, errs[2].Kind)
	assert.Equal(t, models.ErrorKindSyntax, errs[3].Kind)
	assert.Equal(t, models.ErrorKindUnknown, errs[4].Kind)
}

func TestParseErrors_IgnoresNonErrorLines(t *testing.T) {
	assert.Empty(t, ParseErrors("[INFO] BUILD SUCCESS\n[WARNING] something minor\n"))
	assert.Empty(t, ParseErrors("[ERROR] Failed to execute goal without a location"))
}

func TestErrorSignatures_StableAcrossMessageChanges(t *testing.T) {
	a := models.BuildError{File: "A.java", Line: 1, Column: 2, Message: "cannot find symbol x", Kind: models.ErrorKindSymbolNotFound}
	b := models.BuildError{File: "A.java", Line: 1, Column: 2, Message: "cannot find symbol y", Kind: models.ErrorKindSymbolNotFound}
	assert.Equal(t, a.Signature(), b.Signature())
}

func TestExecDriver_SuccessOnZeroExit(t *testing.T) {
	d := NewExecDriver(config.BuildConfig{
		Command: "true",
		Timeout: 10 * time.Second,
	}, slog.Default())

	res, err := d.Build(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
}

func TestExecDriver_FailureParsesErrors(t *testing.T) {
	d := NewExecDriver(config.BuildConfig{
		Command: "sh",
		Args:    []string{"-c", `echo "[ERROR] /w/A.java:[1,2] cannot find symbol"; exit 1`},
		Timeout: 10 * time.Second,
	}, slog.Default())

	res, err := d.Build(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, models.ErrorKindSymbolNotFound, res.Errors[0].Kind)
	assert.Contains(t, res.RawLog, "cannot find symbol")
}

func TestExecDriver_MissingCompilerIsAnError(t *testing.T) {
	d := NewExecDriver(config.BuildConfig{
		Command: "definitely-not-a-compiler-9000",
		Timeout: 10 * time.Second,
	}, slog.Default())

	_, err := d.Build(context.Background(), t.TempDir())
	require.Error(t, err)
}
