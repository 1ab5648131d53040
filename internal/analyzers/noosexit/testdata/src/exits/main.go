package main

import (
	"fmt"
	sys "os"
)

func main() {
	if len(sys.Args) > 5 {
		sys.Exit(2) // want "do not call os.Exit inside main"
	}
	defer fmt.Println("bye")

	func() {
		sys.Exit(0)
	}()

	helper()
}

func helper() {
	sys.Exit(1)
}
