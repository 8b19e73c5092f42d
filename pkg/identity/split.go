package identity

// Split combines independent user and verification stores into one Store.
// Useful when tokens live in Redis while accounts live in Postgres or Mongo.
func Split(users UserStore, verifications VerificationStore) Store {
	return &splitStore{users, verifications}
}

type splitStore struct {
	UserStore
	VerificationStore
}
