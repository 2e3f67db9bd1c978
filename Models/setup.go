package Models

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and runs migrations. SQLite is the default;
// setting DB_HOST in the environment (or a .env file) switches to MySQL.
func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	var connection *gorm.DB
	var err error

	if host := os.Getenv("DB_HOST"); host != "" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			host, os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
		connection, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		connection, err = gorm.Open(sqlite.Open("database.db"), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatal("Migration failed:", err)
	}
}

// Migrate runs AutoMigrate in dependency order so foreign keys resolve.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Task{},
		&Land{},
	); err != nil {
		return err
	}

	// 2. Simple foreign key relationships
	if err := db.AutoMigrate(
		&TaskManage{},
		&Notification{},
	); err != nil {
		return err
	}

	// 3. Models that depend on multiple other models
	return db.AutoMigrate(&AssignedTask{})
}
