package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// dotEnvFile is read from the working directory. Variables already present in
// the environment win over the file.
const dotEnvFile = ".env"

func loadDotEnv() error {
	if err := godotenv.Load(dotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}
	return nil
}
