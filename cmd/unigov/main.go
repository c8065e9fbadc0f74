// Command unigov scrapes UN General Assembly data from the iGov API and
// builds a static HTML site from it.
package main

import "unigov/internal/cli"

func main() {
	cli.Execute()
}
