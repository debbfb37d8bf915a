package mysql

import (
	"context"
	"fmt"
)

type Migration struct {
	Name  string
	Query string
}

// Migrations lists the schema in dependency order. Every statement is
// idempotent.
var Migrations = []Migration{
	{"RestaurantTables", `
	CREATE TABLE IF NOT EXISTS RestaurantTables (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		tableNumber VARCHAR(50) NOT NULL,
		capacity INT NOT NULL DEFAULT 0,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_restaurant_table (restaurantId, tableNumber)
	)`},
	{"MenuItems", `
	CREATE TABLE IF NOT EXISTS MenuItems (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		category VARCHAR(100) NOT NULL DEFAULT '',
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_restaurant (restaurantId)
	)`},
	{"Tickets", `
	CREATE TABLE IF NOT EXISTS Tickets (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		ticketNumber VARCHAR(40) NOT NULL,
		tableId INT NULL,
		orderType VARCHAR(20) NOT NULL DEFAULT 'DineIn',
		customerName VARCHAR(150) NULL,
		customerPhone VARCHAR(30) NULL,
		customerEmail VARCHAR(150) NULL,
		customerAddress VARCHAR(255) NULL,
		subtotal DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		tax DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		notes TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'Pending',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_ticket_number (restaurantId, ticketNumber),
		INDEX idx_restaurant_status (restaurantId, status)
	)`},
	{"TicketItems", `
	CREATE TABLE IF NOT EXISTS TicketItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		ticketId INT UNSIGNED NOT NULL,
		menuItemId INT NOT NULL,
		itemName VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unitPrice DECIMAL(10,2) NOT NULL,
		lineTotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (ticketId) REFERENCES Tickets(id) ON DELETE CASCADE,
		INDEX idx_ticket (ticketId)
	)`},
	{"Orders", `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		orderNumber VARCHAR(40) NOT NULL,
		tableId INT NULL,
		sourceTicketId INT UNSIGNED NULL,
		orderType VARCHAR(20) NOT NULL DEFAULT 'DineIn',
		customerName VARCHAR(150) NULL,
		customerPhone VARCHAR(30) NULL,
		customerEmail VARCHAR(150) NULL,
		customerAddress VARCHAR(255) NULL,
		orderStatus VARCHAR(20) NOT NULL DEFAULT 'Pending',
		paymentStatus VARCHAR(20) NOT NULL DEFAULT 'Pending',
		paymentMethod VARCHAR(50) NOT NULL DEFAULT '',
		subtotal DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		tax DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		notes TEXT,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_order_number (restaurantId, orderNumber),
		UNIQUE KEY uq_source_ticket (restaurantId, sourceTicketId),
		INDEX idx_reconcile (restaurantId, tableId, createdAt)
	)`},
	{"OrderItems", `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		menuItemId INT NOT NULL,
		itemName VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unitPrice DECIMAL(10,2) NOT NULL,
		lineTotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`},
	{"Payments", `
	CREATE TABLE IF NOT EXISTS Payments (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		restaurantId INT NOT NULL,
		orderId INT UNSIGNED NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		method VARCHAR(50) NOT NULL,
		status VARCHAR(20) NOT NULL,
		transactionId VARCHAR(100) NULL,
		notes TEXT,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (orderId) REFERENCES Orders(id),
		INDEX idx_order (orderId)
	)`},
}

func Migrate(ctx context.Context, db DBTX) error {
	for _, m := range Migrations {
		if _, err := db.ExecContext(ctx, m.Query); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}
	return nil
}
