/*
	Copyright 2025 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/f1-dashboard-service/cmd"

func main() {
	cmd.Execute()
}
