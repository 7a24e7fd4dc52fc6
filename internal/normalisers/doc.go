// Package normalisers turns raw inputs into plain text.
//
//   - pdf: page text from uploaded PDF files
//   - html: visible text from fetched web pages
package normalisers
