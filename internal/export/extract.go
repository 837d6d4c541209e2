package export

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkerID is the element of the preview page that holds the resume.
const MarkerID = "cv-preview"

// PreviewNotReadyError is returned when the preview page shows a loading or error
// state instead of a resume.
type PreviewNotReadyError struct {
	State   string
	Message string
}

func (e *PreviewNotReadyError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("preview is not ready (%s): %s", e.State, e.Message)
	}
	return fmt.Sprintf("preview is not ready (%s)", e.State)
}

// ExtractPreview returns the resume markup inside the preview marker of a page.
// The result is what the HTML export endpoint expects.
func ExtractPreview(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	marker := doc.Find("#" + MarkerID).First()
	if marker.Length() == 0 {
		return "", fmt.Errorf("page has no #%s element", MarkerID)
	}

	if state, ok := marker.Attr("data-state"); ok && state != "ready" {
		return "", &PreviewNotReadyError{State: state, Message: strings.TrimSpace(marker.Text())}
	}

	inner, err := marker.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize preview: %w", err)
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return "", fmt.Errorf("#%s is empty", MarkerID)
	}
	return inner, nil
}
