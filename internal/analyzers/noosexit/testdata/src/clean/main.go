package main

import (
	"errors"
	"log"
)

type app struct{}

func (app) Exit(int) {}

func run() error { return errors.New("boom") }

func main() {
	app{}.Exit(1)
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
