package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a login account. Roles: patient, doctor, receptionist, admin.
type User struct {
	ID         bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email      string        `json:"email" bson:"email"`
	Password   string        `json:"-" bson:"password"`
	Role       string        `json:"role" bson:"role"`
	Name       string        `json:"name" bson:"name"`
	Mobile     string        `json:"mobile,omitempty" bson:"mobile,omitempty"`
	PictureURL string        `json:"pictureUrl,omitempty" bson:"pictureUrl,omitempty"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
}

// Patient links an account to a clinic. Personal details live on the User.
type Patient struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	Clinic    string        `json:"clinic" bson:"clinic"`
	IsActive  bool          `json:"isActive" bson:"isActive"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

type Doctor struct {
	ID             bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string        `json:"name,omitempty" bson:"name,omitempty"`
	FirstName      string        `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Specialization string        `json:"specialization" bson:"specialization"`
	Qualification  string        `json:"qualification,omitempty" bson:"qualification,omitempty"`
	Clinic         string        `json:"clinic" bson:"clinic"`
	Status         string        `json:"status" bson:"status"`
	ApprovalStatus string        `json:"approvalStatus" bson:"approvalStatus"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
}

// Appointment statuses: upcoming, booked, completed, cancelled. Updates are
// unconditional; nothing rejects a backwards transition.
type Appointment struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	PatientID   bson.ObjectID `json:"patientId,omitempty" bson:"patientId,omitempty"`
	PatientName string        `json:"patientName" bson:"patientName"`
	DoctorID    bson.ObjectID `json:"doctorId,omitempty" bson:"doctorId,omitempty"`
	DoctorName  string        `json:"doctorName" bson:"doctorName"`
	Clinic      string        `json:"clinic" bson:"clinic"`
	Date        string        `json:"date" bson:"date"` // YYYY-MM-DD
	Time        string        `json:"time" bson:"time"`
	Services    string        `json:"services" bson:"services"`
	Charges     float64       `json:"charges" bson:"charges"`
	PaymentMode string        `json:"paymentMode" bson:"paymentMode"`
	Status      string        `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// Billing statuses: paid, unpaid, partial.
type Billing struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	EncounterID string        `json:"encounterId" bson:"encounterId"`
	DoctorName  string        `json:"doctorName" bson:"doctorName"`
	ClinicName  string        `json:"clinicName" bson:"clinicName"`
	PatientName string        `json:"patientName" bson:"patientName"`
	Services    []BillService `json:"services" bson:"services"`
	TotalAmount float64       `json:"totalAmount" bson:"totalAmount"`
	Discount    float64       `json:"discount" bson:"discount"`
	AmountDue   float64       `json:"amountDue" bson:"amountDue"`
	Date        string        `json:"date" bson:"date"`
	Status      string        `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

type BillService struct {
	Name    string  `json:"name" bson:"name"`
	Charges float64 `json:"charges" bson:"charges"`
}

type Service struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Charges     float64       `json:"charges" bson:"charges"`
	Duration    string        `json:"duration" bson:"duration"`
	Clinic      string        `json:"clinic" bson:"clinic"`
	Active      bool          `json:"active" bson:"active"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// Listing types: Service type, Specialization, Observations, Problems,
// Prescription. Status: Active or Inactive.
type Listing struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Type      string        `json:"type" bson:"type"`
	Status    string        `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

// Report is the metadata for a medical report file attached to an encounter.
// The file itself lives in object storage under ObjectName.
type Report struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	EncounterID string        `json:"encounterId" bson:"encounterId"`
	FileName    string        `json:"fileName" bson:"fileName"`
	ObjectName  string        `json:"-" bson:"objectName"`
	ContentType string        `json:"contentType" bson:"contentType"`
	Size        int64         `json:"size" bson:"size"`
	UploadedAt  time.Time     `json:"uploadedAt" bson:"uploadedAt"`
}
