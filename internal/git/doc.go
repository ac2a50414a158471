// Package git reads revision information from the repository that holds a
// documentation site.
package git
