package main

import (
	"log"

	"gifapp/internal/ui"
)

func main() {
	log.SetPrefix("[gifapp] ")

	ui.CreateApplication()
}
