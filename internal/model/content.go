package model

import (
	"strings"
	"unicode/utf8"
)

// ExtractionResult is the structured text content of one HTML page.
type ExtractionResult struct {
	Title             string            `json:"title"`
	RawText           string            `json:"raw_text"`
	StructuredContent StructuredContent `json:"structured_content"`
}

type StructuredContent struct {
	Headings   []Heading  `json:"headings"`
	Paragraphs []string   `json:"paragraphs"`
	Lists      [][]string `json:"lists"`
	Links      []Link     `json:"links"`
}

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Tag   string `json:"tag"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"url"`
}

type Statistics struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	ParagraphCount int `json:"paragraph_count"`
	HeadingCount   int `json:"heading_count"`
}

// ComputeStatistics derives the counts from the extracted content. Characters are
// counted as Unicode code points.
func ComputeStatistics(c *ExtractionResult) Statistics {
	if c == nil {
		return Statistics{}
	}
	return Statistics{
		CharacterCount: utf8.RuneCountInString(c.RawText),
		WordCount:      len(strings.Fields(c.RawText)),
		ParagraphCount: len(c.StructuredContent.Paragraphs),
		HeadingCount:   len(c.StructuredContent.Headings),
	}
}
