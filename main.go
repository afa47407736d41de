// Main entry point for the application
package main

import (
	"log"

	"gifapp/internal/ui"
)

func main() {
	// Set the logger prefix
	log.SetPrefix("GIF Browser ")

	ui.CreateApplication()
}
