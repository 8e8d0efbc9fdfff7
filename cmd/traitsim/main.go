// Package main provides the traitsim CLI application.
// traitsim compares observed plant-community change in climate-transplant
// experiments against a trait-blind neutral simulation model.
package main

import (
	"github.com/guittarj/TraitsTransplants/cmd"
)

func main() {
	cmd.Execute()
}
