package storage

// Store bundles the engine with one repository per record table.
type Store struct {
	engine *Engine

	Accounts     AccountRepository
	Attendance   AttendanceRepository
	Disciplinary DisciplinaryRepository
	Employment   EmploymentRepository
	Credentials  CredentialRepository
}

// CreateStore initializes a new store file and returns the repositories
// over it. Fails with ErrConflict when the file already exists.
func CreateStore(path string) (*Store, error) {
	engine, err := CreateEngine(path)
	if err != nil {
		return nil, err
	}
	return newStore(engine), nil
}

// OpenStore opens an existing store file. The flag reports whether it
// already held data.
func OpenStore(path string) (*Store, bool, error) {
	engine, hadData, err := OpenEngine(path)
	if err != nil {
		return nil, false, err
	}
	return newStore(engine), hadData, nil
}

// MemoryStore returns an ephemeral store for isolated testing.
func MemoryStore() (*Store, error) {
	engine, err := MemoryEngine()
	if err != nil {
		return nil, err
	}
	return newStore(engine), nil
}

func newStore(engine *Engine) *Store {
	return &Store{
		engine:       engine,
		Accounts:     &accountRepository{engine: engine},
		Attendance:   &attendanceRepository{engine: engine},
		Disciplinary: &disciplinaryRepository{engine: engine},
		Employment:   &employmentRepository{engine: engine},
		Credentials:  &credentialRepository{engine: engine},
	}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.engine.Close()
}

func (s *Store) Engine() *Engine {
	if s == nil {
		return nil
	}
	return s.engine
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.engine.Path()
}
