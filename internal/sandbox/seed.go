package sandbox

import (
	"time"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// Demo credentials accepted by the seeded store
const (
	DemoAdminEmail   = "admin@clinic.test"
	DemoDoctorEmail  = "mehta@clinic.test"
	DemoPatientEmail = "asha@example.com"
	DemoPassword     = "password123"
)

func seed(s *Store) {
	s.users = []user{
		{UID: "AD-1", Email: DemoAdminEmail, Password: DemoPassword, Name: "Front Desk", Role: model.RoleAdmin},
		{UID: "DR-1", Email: DemoDoctorEmail, Password: DemoPassword, Name: "Dr. Anil Mehta", Phone: "+91 98200 10001", Role: model.RoleDoctor},
		{UID: "DR-2", Email: "rao@clinic.test", Password: DemoPassword, Name: "Dr. Priya Rao", Phone: "+91 98200 10002", Role: model.RoleDoctor},
		{UID: "PT-1", Email: DemoPatientEmail, Password: DemoPassword, Name: "Asha Verma", Phone: "+91 98200 11111", Role: model.RolePatient},
		{UID: "PT-2", Email: "vikram@example.com", Password: DemoPassword, Name: "Vikram Singh", Phone: "+91 98200 22222", Role: model.RolePatient},
		{UID: "PT-3", Email: "meera@example.com", Password: DemoPassword, Name: "Meera Iyer", Phone: "+91 98200 33333", Role: model.RolePatient},
	}

	today := s.today()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(dateLayout) }

	for _, a := range []appointment{
		{PatientUID: "PT-1", DoctorUID: "DR-1", Date: day(-30), Start: 11 * 60, Type: "Scaling and polishing", Status: "COMPLETED", Room: "Room 1"},
		{PatientUID: "PT-1", DoctorUID: "DR-1", Date: day(-1), Start: 14 * 60, Type: "Root canal, sitting 1", Status: "COMPLETED", Room: "Room 1"},
		{PatientUID: "PT-1", DoctorUID: "DR-1", Date: day(0), Start: 9 * 60, Type: "Root canal, sitting 2", Status: "CONFIRMED", Room: "Room 1"},
		{PatientUID: "PT-2", DoctorUID: "DR-1", Date: day(0), Start: 10 * 60, Type: "Toothache consultation", Status: "PENDING", Room: "Room 1"},
		{PatientUID: "PT-3", DoctorUID: "DR-2", Date: day(0), Start: 11*60 + 30, Type: "Orthodontic review", Status: "CONFIRMED", Room: "Room 2"},
		{PatientUID: "PT-2", DoctorUID: "DR-2", Date: day(0), Start: 15 * 60, Type: "Crown fitting", Status: "CANCELLED", Room: "Room 2"},
		{PatientUID: "PT-1", DoctorUID: "DR-1", Date: day(7), Start: 9*60 + 30, Type: "Crown preparation", Status: "CONFIRMED", Room: "Room 1", Notes: "Bring previous X-rays"},
	} {
		s.addAppointment(a)
	}

	created := today.AddDate(0, 0, -20)
	for _, c := range []clinicalCase{
		{PatientUID: "PT-1", DoctorUID: "DR-1", Type: "Endodontics", ToothRegion: "Lower right molar (46)", Diagnosis: "Irreversible pulpitis", Stage: model.StageInTreatment, Priority: model.PriorityHigh, RiskScore: 82, NextAction: "Second sitting", NextReviewDate: day(0), AgentSummary: "Pain reduced after first sitting.", AgentRecommendation: "Complete obturation and plan crown.", Flagged: true},
		{PatientUID: "PT-2", DoctorUID: "DR-1", Type: "Consultation", ToothRegion: "Upper left premolar (24)", Diagnosis: "Suspected caries", Stage: model.StageNew, Priority: model.PriorityMedium, RiskScore: 55},
		{PatientUID: "PT-3", DoctorUID: "DR-2", Type: "Orthodontics", ToothRegion: "Full arch", Diagnosis: "Crowding", Stage: model.StageWaitingOnPatient, Priority: model.PriorityLow, RiskScore: 30, NextAction: "Patient to confirm aligner plan", NextReviewDate: day(3)},
		{PatientUID: "PT-2", DoctorUID: "DR-2", Type: "Prosthodontics", ToothRegion: "Upper right molar (16)", Diagnosis: "Fractured crown", Stage: model.StageReadyToClose, Priority: model.PriorityMedium, RiskScore: 64},
		{PatientUID: "PT-1", DoctorUID: "DR-1", Type: "Periodontics", ToothRegion: "Lower anterior", Diagnosis: "Gingivitis", Stage: model.StageClosed, Priority: model.PriorityLow, RiskScore: 12},
		{PatientUID: "PT-3", DoctorUID: "DR-1", Type: "Oral surgery", ToothRegion: "Lower left third molar (38)", Diagnosis: "Impacted wisdom tooth", Stage: model.StageBlocked, Priority: model.PriorityHigh, RiskScore: 74, NextAction: "Awaiting CBCT scan", Flagged: true},
	} {
		c.PatientName = s.nameOf(c.PatientUID)
		c.CreatedAt = created
		c.UpdatedAt = created.Add(48 * time.Hour)
		s.addCase(c)
	}

	expiry := today.AddDate(0, 4, 0).Format(dateLayout)
	s.inventory = []*stockItem{
		{Code: "GAUZE-001", Name: "Gauze pads 2x2", Category: "Consumables", Stock: 140, Threshold: 50},
		{Code: "GLOVE-M", Name: "Nitrile gloves (M)", Category: "PPE", Stock: 60, Threshold: 50},
		{Code: "LIDO-2", Name: "Lidocaine 2% cartridges", Category: "Anesthetics", Stock: 8, Threshold: 20, Expiry: &expiry},
		{Code: "COMP-A2", Name: "Composite resin A2", Category: "Restorative", Stock: 12, Threshold: 10},
		{Code: "FILE-K25", Name: "K-files #25", Category: "Endodontics", Stock: 30, Threshold: 10},
	}

	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	s.payments = []payment{
		{ID: "INV-201", PatientUID: "PT-1", Date: month.AddDate(0, -2, 4).Format(dateLayout), Description: "Scaling and polishing", Amount: 1200, Currency: "INR", Status: "PAID"},
		{ID: "INV-202", PatientUID: "PT-3", Date: month.AddDate(0, -1, 9).Format(dateLayout), Description: "Orthodontic assessment", Amount: 2500, Currency: "INR", Status: "PAID"},
		{ID: "INV-203", PatientUID: "PT-1", Date: day(-1), Description: "Root canal, sitting 1", Amount: 4500, Currency: "INR", Status: "PAID"},
		{ID: "INV-204", PatientUID: "PT-2", Date: day(0), Description: "Consultation", Amount: 500, Currency: "INR", Status: "PAID"},
		{ID: "INV-205", PatientUID: "PT-1", Date: day(0), Description: "Root canal, sitting 2", Amount: 3500, Currency: "INR", Status: "PENDING"},
		{ID: "INV-206", PatientUID: "PT-2", Date: month.AddDate(0, -1, 20).Format(dateLayout), Description: "Crown fitting deposit", Amount: 2000, Currency: "INR", Status: "OVERDUE"},
	}

	s.notify("AD-1", "INVENTORY", "Low stock", "Lidocaine 2% cartridges are below the reorder threshold.")
	s.notify("AD-1", "APPOINTMENT", "Cancellation", "Vikram Singh cancelled the 15:00 crown fitting.")
	s.notify("DR-1", "CASE", "Review due", "CASE-101 is due for review today.")
	s.notify("PT-1", "APPOINTMENT", "Reminder", "Your root canal sitting is today at 09:00.")
	read := s.notify("PT-1", "BILLING", "Payment received", "We received your payment for INV-203.")
	read.Status = "READ"
}
