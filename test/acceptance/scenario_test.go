//go:build acceptance

package acceptance

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leca/dt-petfriends/pkg/petfriends"
)

var _ = Describe("Create then delete", Ordered, func() {
	var (
		key   string
		petID string
	)

	BeforeAll(func() {
		key = authKey()
	})

	It("creates Рыся", func() {
		resp, err := pf.AddNewPet(ctx, key, "Рыся", "рысь", "2", ryskaPhoto)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
		Expect(resp.JSON).To(HaveKeyWithValue("name", "Рыся"))

		pet, ok := resp.Pet()
		Expect(ok).To(BeTrue())
		Expect(pet.ID).NotTo(BeEmpty())
		petID = pet.ID
		GinkgoWriter.Printf("Created pet %s\n", petID)
	})

	It("deletes it", func() {
		resp, err := pf.DeletePet(ctx, key, petID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("no longer lists it", func() {
		resp, err := pf.ListPets(ctx, key, petfriends.FilterMyPets)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		pets, ok := resp.Pets()
		Expect(ok).To(BeTrue())
		for _, p := range pets {
			Expect(p.ID).NotTo(Equal(petID))
		}
	})
})
