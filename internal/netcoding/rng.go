package netcoding

// Rand is the external randomness collaborator the encoder's
// combination roll draws on. *math/rand.Rand satisfies it directly;
// tests inject deterministic or scripted implementations instead of
// relying on any seeding convention the core itself would have to own.
type Rand interface {
	Intn(n int) int
}
