package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Listings() ListingRepository
	Applications() ApplicationRepository
	Notifications() NotificationRepository
}
