package handlers

// @title CRM Ledger API
// @version 1.0
// @description Customer, catalog, sales and payment ledger for a single business with GST-inclusive invoicing

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @tag.name customers
// @tag.description Customer management and statements

// @tag.name items
// @tag.description Catalog items with price and GST rate

// @tag.name sales
// @tag.description Invoiced sales and their lines

// @tag.name payments
// @tag.description Payments and adjustments

// @tag.name ledger
// @tag.description Balances, statistics and data wipe

// @tag.name reports
// @tag.description Monthly and fiscal quarterly sales summaries

// @tag.name backup
// @tag.description JSON export, import and stored backup files
