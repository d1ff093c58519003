package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with staff accounts and sample students and personnel for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{
				"download_logs", "activity_logs", "backup_logs",
				"student_records", "personnel_records", "school_forms",
				"students", "personnel", "users",
			} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers(db, cfg.Security.BCryptCost)
		seedStudents(db)
		seedPersonnel(db)

		fmt.Println("Seeding completed")
	},
}

func seedUsers(db *sqlx.DB, bcryptCost int) {
	accounts := []struct {
		Username string
		Password string
		FullName string
		Email    string
		Role     string
	}{
		{"admin", "admin12345", "System Administrator", "admin@atok-es.edu.ph", "admin"},
		{"registrar", "registrar123", "Maria Santos", "registrar@atok-es.edu.ph", "registrar"},
		{"principal", "principal123", "Jose Ramirez", "principal@atok-es.edu.ph", "school_head"},
	}

	for _, a := range accounts {
		var exists int
		if err := db.QueryRow("SELECT 1 FROM users WHERE username = $1", a.Username).Scan(&exists); err == nil {
			fmt.Printf("user %s already exists, skipping\n", a.Username)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", a.Username, err)
		}

		if _, err := db.Exec(
			`INSERT INTO users (username, password_hash, full_name, email, role, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, 'active', now())`,
			a.Username, string(hash), a.FullName, a.Email, a.Role,
		); err != nil {
			log.Fatalf("failed to insert user %s: %v", a.Username, err)
		}
		fmt.Printf("Seeded user: %s (%s)\n", a.Username, a.Role)
	}
}

func seedStudents(db *sqlx.DB) {
	students := []struct {
		LRN       string
		FirstName string
		LastName  string
	}{
		{"136514100001", "Juan", "Dela Cruz"},
		{"136514100002", "Ana", "Reyes"},
		{"136514100003", "Pedro", "Bautista"},
	}

	for _, s := range students {
		var exists int
		if err := db.QueryRow("SELECT 1 FROM students WHERE lrn = $1", s.LRN).Scan(&exists); err == nil {
			continue
		}

		if _, err := db.Exec(
			`INSERT INTO students (lrn, first_name, last_name, created_at) VALUES ($1, $2, $3, now())`,
			s.LRN, s.FirstName, s.LastName,
		); err != nil {
			log.Fatalf("failed to insert student %s: %v", s.LRN, err)
		}
		fmt.Printf("Seeded student: %s %s\n", s.FirstName, s.LastName)
	}
}

func seedPersonnel(db *sqlx.DB) {
	personnel := []struct {
		EmployeeID string
		FirstName  string
		LastName   string
		Position   string
	}{
		{"EMP-0001", "Liza", "Garcia", "Teacher I"},
		{"EMP-0002", "Ramon", "Torres", "Teacher III"},
	}

	for _, p := range personnel {
		var exists int
		if err := db.QueryRow("SELECT 1 FROM personnel WHERE employee_id = $1", p.EmployeeID).Scan(&exists); err == nil {
			continue
		}

		if _, err := db.Exec(
			`INSERT INTO personnel (employee_id, first_name, last_name, position, status, created_at)
			 VALUES ($1, $2, $3, $4, 'active', now())`,
			p.EmployeeID, p.FirstName, p.LastName, p.Position,
		); err != nil {
			log.Fatalf("failed to insert personnel %s: %v", p.EmployeeID, err)
		}
		fmt.Printf("Seeded personnel: %s %s\n", p.FirstName, p.LastName)
	}
}
