package util

import (
	"fmt"
	"math/rand"
	"time"
)

var adjectives = []string{
	"Bluffing", "Folding", "Raising", "Checking", "Lucky", "Unlucky", "Patient", "Reckless", "Cautious",
	"Daring", "Stoic", "Grinning", "Squinting", "Shuffling", "Stacking", "Calling", "Quiet", "Loud",
	"Crafty", "Bold", "Sly", "Steady", "Wild", "Cool", "Sharp",
}

var animals = []string{
	"Shark", "Fish", "Whale", "Fox", "Owl", "Raven", "Badger", "Wolf", "Coyote", "Lynx", "Otter",
	"Raccoon", "Weasel", "Falcon", "Hawk", "Crane", "Heron", "Turtle", "Viper", "Mongoose", "Jackal",
	"Panther", "Bobcat", "Stoat", "Marten",
}

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

// GetRandomName returns a random name by combining an adjective with an animal
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
