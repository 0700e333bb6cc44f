// Command zkflow generates circuit types for transaction layouts, builds and
// verifies transaction witnesses and serves them over HTTP.
package main

func main() {
	Execute()
}
