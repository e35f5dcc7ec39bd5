/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import (
	"github.com/jacobarthurs/a11yscan/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Variables already set in the environment win over .env.
	_ = godotenv.Load()

	cmd.Execute()
}
