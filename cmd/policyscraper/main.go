// Package main provides the policyscraper command.
//
// Usage:
//
//	policyscraper serve
//	policyscraper scrape --sections "Spam,Bullying and Harassment"
//	policyscraper sections
package main

func main() {
	Execute()
}
