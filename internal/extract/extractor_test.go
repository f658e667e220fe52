package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSupported(t *testing.T) {
	e := NewExtractor()
	for _, name := range []string{"report.pdf", "report.docx", "report.xlsx", "report.txt", "REPORT.PDF"} {
		if !e.Supported(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"report.exe", "report.csv", "report", ""} {
		if e.Supported(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Temperature: 30°C\nClear skies"), "report.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Temperature: 30°C\nClear skies" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("humidity\x80 45%"), "report.txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "humidity� 45%" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Weather Report")
	f.SetCellValue("Sheet1", "A2", "Temperature: 30°C")
	f.SetCellValue("Sheet1", "B2", "Humidity: 45%")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), "report.xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Weather Report\nTemperature: 30°C\tHumidity: 45%" {
		t.Errorf("got %q", got)
	}
}

// minimalDocx returns .docx zip bytes with word/document.xml carrying
// the given text in <w:t> tags.
func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes(minimalDocx("Heavy rain expected tomorrow"), "report.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Heavy rain expected tomorrow" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxPreserveSpaceRuns(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t xml:space="preserve">Wind speed:</w:t></w:r><w:r><w:t>12 km/h</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), "report.docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Wind speed: 12 km/h" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), "report.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

func TestExtractBytes_docxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()

	e := NewExtractor()
	if _, err := e.ExtractBytes(buf.Bytes(), "report.docx"); err == nil {
		t.Error("expected error when word/document.xml missing")
	}
}

func TestExtractBytes_unsupportedExtension(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("raw"), "report.csv"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestPageCount_notPDF(t *testing.T) {
	if n := PageCount([]byte("not a pdf")); n != 0 {
		t.Errorf("PageCount on garbage: got %d, want 0", n)
	}
}
