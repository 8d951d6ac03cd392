package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [question]", queryCmd.Use)
}

func TestQueryCmd_HasFlags(t *testing.T) {
	flag := queryCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)

	require.NotNil(t, queryCmd.Flags().Lookup("stream"))
	require.NotNil(t, queryCmd.Flags().Lookup("json"))
	require.NotNil(t, queryCmd.Flags().Lookup("session"))
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file]", ingestCmd.Use)
	require.NotNil(t, ingestCmd.Flags().Lookup("type"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "query", "watch", "status", "reset", "rebuild", "remove", "history", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestInferFileType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"doc.pdf", domain.SourceTypePDF},
		{"doc.PDF", domain.SourceTypePDF},
		{"report.docx", domain.SourceTypeDOCX},
		{"notes.txt", domain.SourceTypeText},
		{"README.md", domain.SourceTypeText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferFileType(tt.path), tt.path)
	}
}

func TestPrintSources(t *testing.T) {
	page := 4
	ts := 12.5
	sources := []domain.Source{
		{SourceType: domain.SourceTypePDF, SourceFile: "manual.pdf", PageNumber: &page},
		{SourceType: domain.SourceTypeAudio, SourceFile: "talk.mp3", Timestamp: &ts},
	}

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printSources(cmd, sources, 87.5)

	out := buf.String()
	assert.Contains(t, out, "Confidence: 87.50%")
	assert.Contains(t, out, "manual.pdf (pdf), page 4")
	assert.Contains(t, out, "talk.mp3 (audio), 12.5s")
}

func TestPrintSourcesEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printSources(cmd, nil, 0)
	assert.Empty(t, buf.String())
}
