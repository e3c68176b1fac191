package db

import "database/sql"

// EnsureSchema provisions the tables the service owns. Statements use
// CREATE TABLE IF NOT EXISTS so startup stays idempotent against an
// existing database.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_from VARCHAR(100) NOT NULL,
			route_to VARCHAR(100) NOT NULL,
			trip_date VARCHAR(10) NOT NULL,
			trip_time VARCHAR(8) NOT NULL,
			vehicle_code VARCHAR(50) NOT NULL DEFAULT '',
			total_seats INT NOT NULL,
			price_per_seat BIGINT NOT NULL,
			available_seats INT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_trip_date (trip_date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS seat_locks (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT NOT NULL,
			seat_code VARCHAR(10) NOT NULL,
			session_id VARCHAR(64) NOT NULL,
			customer_id BIGINT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'held',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			KEY idx_trip_status (trip_id, status),
			KEY idx_session (session_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			reference VARCHAR(24) NOT NULL,
			trip_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL DEFAULT 0,
			session_id VARCHAR(64) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			seat_count INT NOT NULL,
			fare BIGINT NOT NULL DEFAULT 0,
			fees BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL DEFAULT 0,
			payment_reference VARCHAR(64) NULL,
			expires_at DATETIME NULL,
			cancel_reason VARCHAR(255) NULL,
			cancelled_at DATETIME NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_reference (reference),
			KEY idx_trip_status (trip_id, status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS booking_passengers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			seat_code VARCHAR(10) NOT NULL,
			passenger_name VARCHAR(255) NOT NULL,
			passenger_phone VARCHAR(100) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_booking_seat (booking_id, seat_code),
			KEY idx_booking (booking_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS booking_locks (
			booking_id BIGINT NOT NULL,
			lock_id BIGINT NOT NULL,
			UNIQUE KEY uniq_booking_lock (booking_id, lock_id),
			KEY idx_lock (lock_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS payment_sessions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			reference VARCHAR(64) NOT NULL,
			booking_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			method VARCHAR(30) NOT NULL DEFAULT 'sandbox',
			status VARCHAR(20) NOT NULL DEFAULT 'created',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_reference (reference),
			KEY idx_booking (booking_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, ddl := range stmts {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
