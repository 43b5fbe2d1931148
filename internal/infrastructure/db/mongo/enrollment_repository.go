package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

const collectionEnrollments = "enrollments"

// EnrollmentRepository relies on the unique {student_id, course_id} index
// created by EnsureIndexes; without it concurrent enrolls can duplicate.
type EnrollmentRepository struct {
	col *mongo.Collection
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{col: db.Collection(collectionEnrollments)}
}

type enrollmentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	StudentID string             `bson:"student_id"`
	CourseID  string             `bson:"course_id"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *enrollmentDoc) toDomain() *domain.Enrollment {
	return &domain.Enrollment{
		ID:        d.ID.Hex(),
		StudentID: d.StudentID,
		CourseID:  d.CourseID,
		Status:    domain.EnrollmentStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func filterQuery(f ports.EnrollmentFilter) bson.M {
	q := bson.M{}
	if f.StudentID != "" {
		q["student_id"] = f.StudentID
	}
	if f.CourseID != "" {
		q["course_id"] = f.CourseID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	return q
}

// Create inserts the enrollment. A second record for the same pair is
// rejected by the unique index and reported as domain.ErrDuplicateKey.
func (r *EnrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := enrollmentDoc{
		ID:        primitive.NewObjectID(),
		StudentID: e.StudentID,
		CourseID:  e.CourseID,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEnrollmentNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	return r.findOne(ctx, bson.M{"student_id": studentID, "course_id": courseID})
}

func (r *EnrollmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc enrollmentDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) List(ctx context.Context, filter ports.EnrollmentFilter) ([]*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filterQuery(filter), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	var docs []enrollmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode enrollments: %w", err)
	}

	out := make([]*domain.Enrollment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// UpdateStatus is a compare-and-set on status: the update matches only while
// the record is still in from. When nothing matched, a second lookup tells a
// deleted record apart from one whose status already moved on.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EnrollmentStatus) (*domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEnrollmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc enrollmentDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missedTransition(ctx, oid)
		}
		return nil, fmt.Errorf("update enrollment status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) missedTransition(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if n == 0 {
		return domain.ErrEnrollmentNotFound
	}
	return domain.ErrInvalidTransition
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrEnrollmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEnrollmentNotFound
	}
	return nil
}

func (r *EnrollmentRepository) DeleteMatching(ctx context.Context, filter ports.EnrollmentFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errors.New("delete enrollments: empty filter")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, filterQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("delete enrollments: %w", err)
	}
	return res.DeletedCount, nil
}
