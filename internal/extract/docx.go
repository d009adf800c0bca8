package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXText returns the text of the body paragraphs joined with "\n".
// Tabs and breaks inside a run render as "\t" and "\n"; table content is skipped.
func DOCXText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := bodyParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// bodyParagraphs walks document.xml and collects the run text of each w:p
// that is a direct child of w:body.
func bodyParagraphs(content string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		stack      []string
		current    strings.Builder
		inPara     bool
		runDepth   int
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body":
				inPara = true
				current.Reset()
			case !inPara:
			case name == "r":
				runDepth++
			case runDepth > 0 && name == "t":
				inText = true
			case runDepth > 0 && name == "tab":
				current.WriteString("\t")
			case runDepth > 0 && (name == "br" || name == "cr"):
				current.WriteString("\n")
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			name := t.Name.Local
			switch {
			case !inPara:
			case name == "t":
				inText = false
			case name == "r":
				runDepth--
			case name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
