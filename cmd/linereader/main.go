// Package main provides the linereader control CLI.
package main

func main() {
	Execute()
}
