// Package messages holds every user-facing chat string in one place.
package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/dimasprakoso/catatduit/types"
)

const RegisterPrompt = "Nomor Anda belum terdaftar. Ketik `register` untuk mulai registrasi."

const DefaultAdviceQuestion = "Keuangan aku sehat gak? Kasih saran yang paling penting bulan ini."

func Help() string {
	return strings.Join([]string{
		"Perintah yang tersedia:",
		"- Catat transaksi: ketik bebas, contoh `makan siang 45000`",
		"- Kirim foto struk dengan caption untuk catat via OCR",
		"- /report [daily|weekly|monthly] -> laporan keuangan",
		"- /insight -> analisis keuangan bulan ini",
		"- /advice [pertanyaan] -> saran keuangan",
		"- /budget set <kategori> <nominal> -> set budget bulanan",
		"- /goal set <nominal> -> set target tabungan",
		"- /goal status -> progress tabungan",
	}, "\n")
}

func RateLimited(retryAfter time.Duration) string {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	return fmt.Sprintf("Terlalu banyak request. Coba lagi dalam %d detik.", secs)
}

func InvalidPayload() string {
	return "Payload tidak valid."
}

func GenericFallback() string {
	return "Maaf, saya belum bisa memproses pesan Anda sekarang. Coba lagi beberapa saat lagi atau ketik /help."
}

func OnboardingQuestion(step types.OnboardingStep) string {
	switch step {
	case types.StepWaitRegister:
		return RegisterPrompt
	case types.StepAskName:
		return "Pertanyaan 1/4: nama lengkap Anda siapa?"
	case types.StepAskCurrency:
		return "Pertanyaan 2/4: mata uang utama Anda apa?\nBalas: `IDR` atau `USD`."
	case types.StepAskMonthlyBudget:
		return "Pertanyaan 3/4: target budget bulanan Anda berapa?\nContoh: `3000000`"
	case types.StepAskSavingsTarget:
		return "Pertanyaan 4/4: target tabungan Anda berapa?\nContoh: `10000000`"
	default:
		return "Registrasi sudah selesai."
	}
}

func OnboardingStarted() string {
	return "Registrasi dimulai.\n" + OnboardingQuestion(types.StepAskName)
}

func OnboardingNameTooShort() string {
	return "Nama terlalu pendek.\n" + OnboardingQuestion(types.StepAskName)
}

func OnboardingInvalidCurrency() string {
	return "Format mata uang belum valid.\nBalas `IDR` atau `USD`."
}

func OnboardingInvalidMonthlyBudget() string {
	return "Budget bulanan belum valid.\nContoh balasan: `3000000`"
}

func OnboardingInvalidSavingsTarget() string {
	return "Target tabungan belum valid.\nContoh balasan: `10000000`"
}

func OnboardingTextOnly(step types.OnboardingStep) string {
	return "Registrasi awal hanya bisa via teks.\n" + OnboardingQuestion(step)
}

func OnboardingCommandLocked(step types.OnboardingStep) string {
	return "Perintah belum bisa dipakai sebelum registrasi selesai.\n" + OnboardingQuestion(step)
}

func OnboardingCompleted(amount float64, currency, paymentLink string) string {
	return strings.Join([]string{
		"Registrasi selesai.",
		"Langkah berikutnya: aktivasi subscription dengan pembayaran dummy.",
		fmt.Sprintf("Nominal dummy: %.0f %s", amount, currency),
		fmt.Sprintf("Link pembayaran: %s", paymentLink),
		"Setelah klik Paid di web, bot akan kirim notifikasi otomatis.",
	}, "\n")
}

func OnboardingAwaitingPayment(paymentLink string) string {
	return fmt.Sprintf("Registrasi sudah selesai. Selesaikan pembayaran di %s", paymentLink)
}

func SubscriptionRequired(paymentLink string) string {
	return strings.Join([]string{
		"Subscription Anda belum aktif.",
		fmt.Sprintf("Silakan selesaikan pembayaran dummy di: %s", paymentLink),
		"Setelah status paid, bot akan mengirim notifikasi aktivasi.",
	}, "\n")
}

func PaymentConfirmed() string {
	return "Pembayaran berhasil dikonfirmasi. Subscription Anda sudah aktif, sekarang bot bisa dipakai."
}

func TransactionUnreadable() string {
	return "Saya belum bisa membaca detail transaksi. Contoh: `makan siang 45000`."
}

func TransactionConfirmed(tx *types.Transaction) string {
	lines := []string{
		"Transaksi berhasil dicatat:",
		fmt.Sprintf("- Tipe: %s", tx.Type),
		fmt.Sprintf("- Amount: %.2f", tx.Amount),
		fmt.Sprintf("- Category: %s", tx.Category),
	}
	if tx.Merchant != "" {
		lines = append(lines, fmt.Sprintf("- Merchant: %s", tx.Merchant))
	}
	lines = append(lines, fmt.Sprintf("- Tanggal: %s", tx.OccurredAt.UTC().Format(time.RFC3339)))
	return strings.Join(lines, "\n")
}

func BudgetAlert(category string, limit, spent float64) string {
	return fmt.Sprintf("Alert: budget kategori %s terlampaui. Limit %.2f, aktual %.2f.", category, limit, spent)
}

func BudgetSaved(category string, limit, spent, remaining float64) string {
	return strings.Join([]string{
		"Budget kategori berhasil disimpan:",
		fmt.Sprintf("- Category: %s", category),
		fmt.Sprintf("- Limit bulanan: %.2f", limit),
		fmt.Sprintf("- Terpakai bulan ini: %.2f", spent),
		fmt.Sprintf("- Sisa bulan ini: %.2f", remaining),
	}, "\n")
}

func GoalNotSet() string {
	return "Target tabungan belum diset. Gunakan `/goal set <target>`."
}

func GoalStatus(target, progress, remaining, percent float64) string {
	return strings.Join([]string{
		"Status goal tabungan:",
		fmt.Sprintf("- Target: %.2f", target),
		fmt.Sprintf("- Progress: %.2f", progress),
		fmt.Sprintf("- Remaining: %.2f", remaining),
		fmt.Sprintf("- Progress: %.1f%%", percent),
	}, "\n")
}

func ReportEmpty(period types.ReportPeriod) string {
	return fmt.Sprintf("Belum ada transaksi untuk report %s.", period)
}

func ReportSummary(period types.ReportPeriod, income, expense float64, topCategory string, topTotal float64) string {
	base := fmt.Sprintf("Report %s: income %.2f, expense %.2f, balance %.2f.", period, income, expense, income-expense)
	if topCategory == "" {
		return base + " No expense category data."
	}
	return base + fmt.Sprintf(" Top expense category: %s (%.2f).", topCategory, topTotal)
}

func ChartUnavailableSuffix() string {
	return " (Chart unavailable sementara.)"
}

func ImageMissing() string {
	return "Gambar tidak ditemukan di payload."
}

func OCRFailed() string {
	return "Gagal membaca teks dari gambar saat ini. Silakan kirim foto yang lebih jelas atau catat via teks."
}

func OCRIncomplete() string {
	return "Teks receipt berhasil terbaca, tapi detail transaksi belum lengkap. Coba tambahkan caption seperti `expense makan 45000`."
}

func InsightNoTransactions() string {
	return "Belum ada transaksi bulan ini. Mulai dengan mencatat transaksi harian Anda."
}

func AdviceNoTransactions() string {
	return "Deskriptif: belum ada transaksi bulan ini. Diagnostik: data masih terlalu minim untuk analisis pola. Preskriptif: catat pemasukan dan pengeluaran rutin minimal 3-7 hari agar analisis lebih akurat."
}
