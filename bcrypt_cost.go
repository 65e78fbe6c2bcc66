//go:build !race

package photostream

func passwordHashCost() int {
	return 14
}
