// Package html fetches web pages and reduces them to their visible text.
//
// Script, style, noscript, svg and template elements are dropped, text nodes
// are joined with single spaces, and all whitespace runs collapse to one
// space. Outbound requests are paced by a token bucket so a batch of URLs
// never bursts against one site.
package html
