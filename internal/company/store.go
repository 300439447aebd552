// Package company provides the demo company knowledge base: an employee
// and project database plus a small markdown document store.
package company

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Employee is a row in the employees table.
type Employee struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Salary     int64  `json:"salary"`
	Skills     string `json:"skills"` // comma-separated
	HireDate   string `json:"hire_date"`
}

// Project is a row in the projects table.
type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Budget     int64  `json:"budget"`
	EmployeeID int64  `json:"employee_id"`
	Deadline   string `json:"deadline"`
}

// Store is the SQLite-backed company database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the company database at dbPath, applies the
// schema, and seeds the sample data.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		name TEXT,
		department TEXT,
		salary INTEGER,
		skills TEXT,
		hire_date TEXT
	);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY,
		name TEXT,
		status TEXT,
		budget INTEGER,
		employee_id INTEGER,
		deadline TEXT,
		FOREIGN KEY (employee_id) REFERENCES employees (id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

var sampleEmployees = []Employee{
	{1, "Alice Johnson", "Engineering", 95000, "Python,AI,ML,LangChain", "2023-01-15"},
	{2, "Bob Smith", "Marketing", 75000, "SEO,Content,Analytics,Social Media", "2023-03-20"},
	{3, "Carol Davis", "Engineering", 105000, "Database,Python,DevOps,Docker", "2022-11-10"},
	{4, "David Wilson", "Sales", 85000, "CRM,Negotiation,Analytics,B2B", "2023-05-05"},
	{5, "Eva Martinez", "Engineering", 98000, "React,TypeScript,Node.js,GraphQL", "2023-02-01"},
}

var sampleProjects = []Project{
	{1, "AI Chat System", "In Progress", 250000, 1, "2025-03-30"},
	{2, "Marketing Campaign", "Completed", 50000, 2, "2025-01-15"},
	{3, "Database Migration", "Planning", 150000, 3, "2025-06-01"},
	{4, "Sales Analytics", "In Progress", 100000, 4, "2025-04-15"},
	{5, "Web Portal", "In Progress", 180000, 5, "2025-05-20"},
}

func (s *Store) seed() error {
	for _, e := range sampleEmployees {
		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO employees VALUES (?, ?, ?, ?, ?, ?)
		`, e.ID, e.Name, e.Department, e.Salary, e.Skills, e.HireDate)
		if err != nil {
			return err
		}
	}
	for _, p := range sampleProjects {
		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO projects VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Status, p.Budget, p.EmployeeID, p.Deadline)
		if err != nil {
			return err
		}
	}
	return nil
}

// Query runs a read-only SQL query and returns the rows as generic
// maps. Only SELECT statements are allowed since the query text comes
// from a language model.
func (s *Store) Query(query string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("query is required")
	}
	first := strings.ToUpper(strings.Fields(trimmed)[0])
	if first != "SELECT" {
		return nil, fmt.Errorf("only SELECT queries are allowed, got %s", first)
	}
	if strings.Contains(trimmed, ";") {
		return nil, fmt.Errorf("multiple statements are not allowed")
	}

	rows, err := s.db.Query(trimmed)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			// database/sql hands back []byte for TEXT columns
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Employees returns all employees ordered by ID.
func (s *Store) Employees() ([]Employee, error) {
	rows, err := s.db.Query(`SELECT id, name, department, salary, skills, hire_date FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Department, &e.Salary, &e.Skills, &e.HireDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Projects returns all projects ordered by ID.
func (s *Store) Projects() ([]Project, error) {
	rows, err := s.db.Query(`SELECT id, name, status, budget, employee_id, deadline FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Budget, &p.EmployeeID, &p.Deadline); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
