// Command forecast predicts when a consumable runs out from a file of
// recurring schedules.
//
//	forecast run --schedules uses.toml --amount 129.87 --today 2026-10-16
//	forecast validate --schedules uses.json
package main

func main() {
	Execute()
}
