// Package extractors provides implementations of the Extractor interface
// for the document formats analysts upload: PDF annual reports, spreadsheets,
// CSV exports, SENS announcements in text or HTML, and Word documents.
// Each extractor knows how to turn one family of MIME types into ordered
// text units with structural locators.
//
// Extractors are registered with the Registry at startup.
package extractors
