package domain

// User roles determine the price tier and admin access
const (
	RoleUser  = "user"  // Regular customer, base prices
	RoleVIP   = "vip"   // VIP customer, vip price tier
	RoleAgent = "agent" // Reseller, agent price tier
	RoleAdmin = "admin" // Administrator, base prices + admin routes
)

// User account statuses
const (
	UserActive    = "active"    // Account may place orders
	UserSuspended = "suspended" // Account is blocked from ordering
)

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey"`                                     // Primary key
	Username string `gorm:"unique;not null"`                                // Unique username
	Password string `gorm:"not null"`                                       // Hashed password
	Role     string `gorm:"default:user"`                                   // Role: user, vip, agent or admin
	Status   string `gorm:"default:active"`                                 // Status: active or suspended
	Wallet   Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // One-to-one relationship with Wallet
}
