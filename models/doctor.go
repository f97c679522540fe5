package models

import "time"

// DefaultDoctorImage is used when a doctor is added without an image reference.
const DefaultDoctorImage = "https://via.placeholder.com/100?text=Doctor"

// Doctor represents a bookable practitioner in the directory.
type Doctor struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Specialty  string    `bson:"specialty" json:"specialty"`
	Experience int       `bson:"experience" json:"experience"`
	Image      string    `bson:"image" json:"image"`
	Available  bool      `bson:"available" json:"available"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// DoctorRef is the identity slice of a doctor embedded in appointment payloads.
type DoctorRef struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Specialty string `bson:"specialty" json:"specialty"`
}

// Ref returns the embeddable identity view of the doctor.
func (d *Doctor) Ref() *DoctorRef {
	if d == nil {
		return nil
	}
	return &DoctorRef{ID: d.ID, Name: d.Name, Specialty: d.Specialty}
}
