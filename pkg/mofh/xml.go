package mofh

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// decodeXMLTree turns an XML document into nested maps keyed by element
// name. Leaf elements become their trimmed text, elements with children
// become map[string]interface{}, repeated siblings become []interface{}.
// Attributes are dropped and HTML entities such as &nbsp; are accepted.
// It keeps no state between calls.
func decodeXMLTree(body string) (map[string]interface{}, error) {
	type frame struct {
		name     string
		fields   map[string]interface{}
		text     strings.Builder
		hasChild bool
	}

	dec := xml.NewDecoder(strings.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	doc := make(map[string]interface{})
	stack := []*frame{{fields: doc}}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack[len(stack)-1].hasChild = true
			stack = append(stack, &frame{name: t.Name.Local, fields: make(map[string]interface{})})
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		case xml.EndElement:
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			var value interface{} = strings.TrimSpace(cur.text.String())
			if cur.hasChild {
				value = cur.fields
			}
			addXMLChild(stack[len(stack)-1].fields, cur.name, value)
		}
	}

	if len(doc) == 0 {
		return nil, errors.New("no root element")
	}
	return doc, nil
}

func addXMLChild(fields map[string]interface{}, name string, value interface{}) {
	existing, ok := fields[name]
	if !ok {
		fields[name] = value
		return
	}
	if list, ok := existing.([]interface{}); ok {
		fields[name] = append(list, value)
		return
	}
	fields[name] = []interface{}{existing, value}
}

// lookupMap walks nested maps by element name.
func lookupMap(tree map[string]interface{}, path ...string) (map[string]interface{}, bool) {
	cur := tree
	for _, name := range path {
		next, ok := cur[name].(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
