// Package html provides an Extractor for HTML documents such as SENS
// announcements saved from the web. It parses the markup with goquery,
// drops scripts and styles, and starts a new section unit at every h1-h3
// heading.
package html
