package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTimestampMangledName(t *testing.T) {
	name, kind := Resolve("https://x/y/api_2025-09-04T14:30:50.602985+00:00_test.txt?sig=abc")
	assert.Equal(t, "test.txt", name)
	assert.Equal(t, KindDocument, kind)
}

func TestResolvePlainImage(t *testing.T) {
	name, kind := Resolve("https://x/photo.png")
	assert.Equal(t, "photo.png", name)
	assert.Equal(t, KindImage, kind)
}

func TestResolveEmptyURL(t *testing.T) {
	name, kind := Resolve("")
	assert.Equal(t, FallbackName, name)
	assert.Equal(t, KindDocument, kind)
}

func TestResolveMinimalPercentDecoding(t *testing.T) {
	name, _ := Resolve("https://x/a%20b_report.pdf")
	assert.Equal(t, "a b_report.pdf", name)

	// Only %20 and %2B are decoded; everything else stays literal.
	name, _ = Resolve("https://x/spread%2Bsheet%2C.xlsx")
	assert.Equal(t, "spread+sheet%2C.xlsx", name)
}

func TestResolveRejoinsFromExtensionBearingPart(t *testing.T) {
	// Everything from the first extension-bearing part onward is rejoined,
	// so trailing underscores in the original filename survive.
	name, kind := Resolve("https://bucket/api_2025-01-02T03:04:05.000000+00:00_notes.txt_v2")
	assert.Equal(t, "notes.txt_v2", name)
	assert.Equal(t, KindDocument, kind)
}

func TestResolveNoExtensionFallsBackToLastPart(t *testing.T) {
	name, kind := Resolve("https://bucket/api_2025-01-02T03:04:05+00:00_blob")
	assert.Equal(t, "blob", name)
	assert.Equal(t, KindDocument, kind)
}

func TestResolveFewUnderscorePartsUsesWholeSegment(t *testing.T) {
	name, _ := Resolve("https://x/report_final.pdf")
	assert.Equal(t, "report_final.pdf", name)
}

func TestResolveQueryParametersStripped(t *testing.T) {
	name, kind := Resolve("https://x/shot.jpeg?X-Amz-Expires=3600&X-Amz-Signature=deadbeef")
	assert.Equal(t, "shot.jpeg", name)
	assert.Equal(t, KindImage, kind)
}

func TestClassifyUsesWholeURL(t *testing.T) {
	// Classification looks at the full lowercase URL, not the recovered
	// name: an image extension anywhere marks it as an image.
	_, kind := Resolve("https://x/images/UPLOAD.PNG")
	assert.Equal(t, KindImage, kind)

	_, kind = Resolve("https://x/files/notes.zip")
	assert.Equal(t, KindDocument, kind)
}

func TestResolveNotAWellFormedURL(t *testing.T) {
	name, kind := Resolve("just-a-name.pdf")
	assert.Equal(t, "just-a-name.pdf", name)
	assert.Equal(t, KindDocument, kind)
}
