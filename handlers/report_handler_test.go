package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReportObjectNameGroupsByEncounter(t *testing.T) {
	name := BuildReportObjectName("ENC-ABCD2345", "scan.pdf")

	assert.True(t, strings.HasPrefix(name, "ENC-ABCD2345/"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
}

func TestBuildReportObjectNameLowercasesExtension(t *testing.T) {
	name := BuildReportObjectName("ENC-ABCD2345", "XRAY.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestBuildReportObjectNameIsUnique(t *testing.T) {
	a := BuildReportObjectName("ENC-ABCD2345", "scan.pdf")
	b := BuildReportObjectName("ENC-ABCD2345", "scan.pdf")
	assert.NotEqual(t, a, b)
}

func TestReportContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ReportContentType("results.pdf"))
	assert.Equal(t, "image/jpeg", ReportContentType("photo.JPG"))
	assert.Equal(t, "image/jpeg", ReportContentType("photo.jpeg"))
	assert.Equal(t, "image/png", ReportContentType("scan.png"))
}

func TestReportContentTypeRejectsUnknown(t *testing.T) {
	assert.Empty(t, ReportContentType("notes.docx"))
	assert.Empty(t, ReportContentType("script.exe"))
	assert.Empty(t, ReportContentType("noextension"))
}
