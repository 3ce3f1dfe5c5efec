package service

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/catalog/internal/models"
)

// SeedFile replaces the built-in seed data. Either list may be omitted to keep
// the defaults for that collection.
type SeedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Products []struct {
		Name        string  `yaml:"name"`
		Price       float64 `yaml:"price"`
		Description string  `yaml:"description"`
	} `yaml:"products"`
}

func LoadSeedFile(path string) (*SeedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	var sf SeedFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &sf, nil
}

// Apply validates the file and installs its data on the seeder.
func (sf *SeedFile) Apply(s *Seeder) error {
	if len(sf.Users) > 0 {
		seen := make(map[string]bool, len(sf.Users))
		users := make([]SeedUser, 0, len(sf.Users))
		for i, u := range sf.Users {
			name := strings.TrimSpace(u.Username)
			role := models.Role(u.Role)
			switch {
			case name == "" || u.Password == "":
				return fmt.Errorf("seed user #%d: username and password are required", i+1)
			case !role.Valid():
				return fmt.Errorf("seed user %s: unknown role %q", name, u.Role)
			case seen[name]:
				return fmt.Errorf("seed user %s: duplicate username", name)
			}
			seen[name] = true
			users = append(users, SeedUser{Username: name, Password: u.Password, Role: role})
		}
		s.Users = users
	}

	if len(sf.Products) > 0 {
		products := make([]models.Product, 0, len(sf.Products))
		for i, p := range sf.Products {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				return fmt.Errorf("seed product #%d: name is required", i+1)
			}
			if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
				return fmt.Errorf("seed product %s: price must be a non-negative number", name)
			}
			products = append(products, models.Product{Name: name, Price: p.Price, Description: p.Description})
		}
		s.Products = products
	}
	return nil
}
